package macro

import (
	"context"

	"github.com/leapstack-labs/leapmacro/pkg/core"
)

// SurrogateKeyName is the registered name of the surrogate key macro.
const SurrogateKeyName = "GENERATE_SURROGATE_KEY__SHA_256"

const (
	// NullSentinel replaces NULL field values before hashing. A real value
	// equal to this text hashes the same as NULL.
	NullSentinel = "_leapmacro_surrogate_key_null_"

	surrogateKeySeparator = "|"
	surrogateKeyHashFunc  = "DIGEST"
	surrogateKeyAlgorithm = "sha256"
	surrogateKeyCastType  = "TEXT"
)

var surrogateKeySignature = Signature{
	{Name: "fields", Kinds: KindAny, Variadic: true},
}

// GenerateSurrogateKey folds fields into one deterministic hash expression:
//
//	DIGEST(CONCAT(COALESCE(CAST(f1 AS TEXT), '<sentinel>'), '|', ...), 'sha256')
//
// Field order is significant. At least one field is required.
func GenerateSurrogateKey(fields ...core.Expr) (core.Expr, error) {
	if len(fields) == 0 {
		return nil, &ConfigurationError{
			Macro:    SurrogateKeyName,
			Arg:      "fields",
			Expected: "at least one expression",
			Got:      "none",
		}
	}

	parts := make([]core.Expr, 0, 2*len(fields)-1)
	for i, field := range fields {
		if i > 0 {
			parts = append(parts, core.String(surrogateKeySeparator))
		}
		parts = append(parts, core.Coalesce(
			core.Cast(field, surrogateKeyCastType),
			core.String(NullSentinel),
		))
	}

	return core.Func(surrogateKeyHashFunc,
		core.Concat(parts...),
		core.String(surrogateKeyAlgorithm),
	), nil
}

func surrogateKeyMacro(_ context.Context, _ *Env, args *Args) ([]core.Expr, error) {
	key, err := GenerateSurrogateKey(args.Rest()...)
	if err != nil {
		return nil, err
	}
	return []core.Expr{key}, nil
}
