package spinner

import "testing"

func TestStopWithoutStart(t *testing.T) {
	StopSpinner()
	StopSpinner()
}

func TestStartStop(t *testing.T) {
	StartSpinner("Building player...")
	if !Enabled() && loader != nil {
		t.Error("spinner must not start without a terminal")
	}
	StopSpinner()
	if loader != nil {
		t.Error("StopSpinner should clear the spinner")
	}
}
