package domain

// Protocols is the fixed set of mock issuance platforms, in draw order.
var Protocols = []string{
	"Pump",
	"Mayhem",
	"Bonk",
	"Bags",
	"Moonshot",
	"Heaven",
	"Daos.fun",
	"Candle",
	"Sugar",
	"Believe",
	"Jupiter Studio",
	"Moonit",
}

// IsKnownProtocol reports whether name is one of Protocols.
func IsKnownProtocol(name string) bool {
	for _, p := range Protocols {
		if p == name {
			return true
		}
	}
	return false
}
