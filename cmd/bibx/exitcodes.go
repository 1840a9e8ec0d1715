package main

// Exit codes
const (
	ExitSuccess        = 0 // Success
	ExitError          = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError    = 2 // Configuration error (missing repository, invalid config)
	ExitDataError      = 3 // Data error (unreadable document, malformed library)
	ExitNoBibliography = 4 // No document contained a bibliography
)
