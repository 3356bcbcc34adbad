package config

import (
	_ "github.com/viur-framework/flare/internal/engine/process"
	_ "github.com/viur-framework/flare/internal/engine/recorder"
)
