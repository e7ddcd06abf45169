package config

const (
	DefaultNodeConfigPath = "config/node.yml"
	DefaultPowConfigPath  = "config/pow.ini"

	DefaultStoreDirectory = "./data/blocks"
	DefaultAPIListenAddr  = ":8080"
	DefaultMinerInterval  = 1000

	DefaultDiffBits              = 16
	DefaultMaxFutureDriftSeconds = 600
)
