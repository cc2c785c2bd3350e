package app

// MinHumansToStart is the number of seated humans needed before the host can start.
const MinHumansToStart = 1

// maxCodeAttempts bounds how many codes CreateSession draws before giving up.
const maxCodeAttempts = 64

// DefaultCodeLength is the length of codes drawn by RandomCodes.
const DefaultCodeLength = 8
