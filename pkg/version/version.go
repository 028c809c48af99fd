package version

// Version is the current reassignctl version.
const Version = "0.1.0"
