package cmdsafe

// Compiled-in length ceilings. Adapters assign a class per field in their
// input schemas; the ceilings are not negotiable per call.
const (
	StringMax      = 10000 // General string fields (patterns, queries).
	ShortStringMax = 1000  // Hosts, names, URIs.
	PathMax        = 4096  // Filesystem paths.
	ArrayMax       = 100   // Maximum items per array field.
)

// LengthClass selects which ceiling applies to a field.
type LengthClass int

const (
	ClassString LengthClass = iota
	ClassShortString
	ClassPath
)

// Limit returns the byte ceiling for the class.
func (c LengthClass) Limit() int {
	switch c {
	case ClassShortString:
		return ShortStringMax
	case ClassPath:
		return PathMax
	default:
		return StringMax
	}
}

func (c LengthClass) String() string {
	switch c {
	case ClassShortString:
		return "short string"
	case ClassPath:
		return "path"
	default:
		return "string"
	}
}

// ValidateLength rejects value when it exceeds the class ceiling.
func ValidateLength(value, field string, class LengthClass) error {
	if len(value) > class.Limit() {
		return reject(KindSize, field,
			"value length %d exceeds %s limit of %d", len(value), class, class.Limit())
	}
	return nil
}

// ValidateLengthAll applies the class ceiling elementwise plus an overall
// item-count ceiling of ArrayMax.
func ValidateLengthAll(values []string, field string, class LengthClass) error {
	if len(values) > ArrayMax {
		return reject(KindSize, field,
			"array has %d items, exceeds limit of %d", len(values), ArrayMax)
	}
	for _, v := range values {
		if err := ValidateLength(v, field, class); err != nil {
			return err
		}
	}
	return nil
}
