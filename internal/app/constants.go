package app

// MinPlayersToStartGame defines the minimum number of occupied seats required to start a match.
const MinPlayersToStartGame = 2

// MaxSeats is the table size offered by the match handler.
const MaxSeats = 4
