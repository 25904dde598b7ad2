package oracle

import "github.com/pkg/errors"

var (
	AssetAlreadyWhitelisted   = errors.New("asset already whitelisted")
	AssetIsNotWhitelisted     = errors.New("asset is not whitelisted")
	NotValidZeroPrice         = errors.New("zero price is not allowed")
	SourceIsNotFeeder         = errors.New("price source is not feeder")
	PriceNeverFeeded          = errors.New("price has never been feeded")
	PoolInvalidAssetsLenght   = errors.New("pool must hold exactly two assets")
	PriceResolveDepthExceeded = errors.New("price source recursion too deep")
	InvalidPrecision          = errors.New("feeder precision below base precision")
	InvalidPathKey            = errors.New("path key does not lead to a decimal string")
	ZeroTotalSupply           = errors.New("token total supply is zero")
	PriceIsTooOld             = errors.New("price is too old")
	NoUpdatesDetected         = errors.New("no updates detected on update_config")
)
