package generator

// memeName is a name/symbol pair cycled through by index.
type memeName struct {
	Name   string
	Symbol string
}

var memeNames = []memeName{
	{"Pepe Coin", "PEPE"},
	{"Doge Killer", "LEASH"},
	{"Shiba Inu", "SHIB"},
	{"Floki", "FLOKI"},
	{"Wojak", "WOJAK"},
	{"Milady", "LADYS"},
	{"Turbo", "TURBO"},
	{"Sponge", "SPONGE"},
	{"Mog Coin", "MOG"},
	{"HarryPotter", "BITCOIN"},
	{"HODL", "HODL"},
	{"GigaChad", "GIGA"},
	{"BasedGod", "BASED"},
	{"Zoomer", "ZOOM"},
	{"Boomer", "BOOM"},
	{"Coq Inu", "COQ"},
	{"Bonk", "BONK"},
	{"Myro", "MYRO"},
	{"Wen", "WEN"},
	{"Popcat", "POPCAT"},
	{"Dogwifhat", "WIF"},
	{"Silly Dragon", "SILLY"},
	{"Retardio", "RETARD"},
	{"Michi", "MICHI"},
	{"Popcat", "POPCAT"},
	{"Mew", "MEW"},
	{"Maneki", "MANEKI"},
	{"Slothana", "SLOTH"},
	{"Book of Meme", "BOME"},
	{"Slerf", "SLERF"},
}
