package token

// Word lists for token derivation. Changing either list length changes
// every derived token, so treat these as frozen for a running event.
var adjectives = []string{
	"amber", "bold", "brisk", "calm", "clever", "cosmic", "crimson", "daring",
	"dusty", "eager", "fancy", "fierce", "frosty", "gentle", "golden", "happy",
	"hidden", "ivory", "jolly", "keen", "lively", "lucky", "mellow", "noble",
	"odd", "proud", "quiet", "rapid", "shiny", "sly", "swift", "witty",
}

var nouns = []string{
	"anchor", "badger", "beacon", "comet", "condor", "cricket", "dragon", "falcon",
	"gecko", "glacier", "harbor", "heron", "jaguar", "kestrel", "lantern", "lynx",
	"marmot", "meteor", "nebula", "otter", "panther", "pebble", "pylon", "quartz",
	"raven", "reef", "signal", "sparrow", "summit", "turbine", "walrus", "zephyr",
}
