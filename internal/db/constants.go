package db

// timeLayout is how timestamps are stored: UTC, compatible with SQLite's
// date and time functions.
const timeLayout = "2006-01-02 15:04:05"
