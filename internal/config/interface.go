package config

import "context"

// Loader translates configuration files into the agnostic model. The HCL
// implementation lives in internal/hcl; tests may supply their own.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}
