package version

// Tool metadata, replaced at release time through -ldflags "-X ...".
var (
	Version      = "0.1.0"         // Version of innobuild
	Toolname     = "innobuild-dev" // Name of the tool
	Organization = "unknown"       // Organization that built the tool
	BuildDate    = "unknown"       // Date when the tool was built
	CommitSHA    = "unknown"       // Commit SHA of the tool
)
