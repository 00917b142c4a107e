package shell

import "errors"

var (
	ErrAssetMissing  = errors.New("shell asset is missing")
	ErrLoadingAssets = errors.New("error loading shell assets")
)
