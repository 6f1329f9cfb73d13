package pivtypes

import "fmt"

// PINPolicy controls how often the PIN must be verified to use a key.
type PINPolicy byte

const (
	PINPolicyDefault PINPolicy = 0x00
	PINPolicyNever   PINPolicy = 0x01
	PINPolicyOnce    PINPolicy = 0x02
	PINPolicyAlways  PINPolicy = 0x03
)

// PINPolicyFromValue maps a wire value back to a PINPolicy.
func PINPolicyFromValue(value byte) (PINPolicy, error) {
	if value > byte(PINPolicyAlways) {
		return 0, fmt.Errorf("pivtypes: unknown PIN policy value 0x%02X", value)
	}
	return PINPolicy(value), nil
}

func (p PINPolicy) String() string {
	switch p {
	case PINPolicyDefault:
		return "Default"
	case PINPolicyNever:
		return "Never"
	case PINPolicyOnce:
		return "Once"
	case PINPolicyAlways:
		return "Always"
	default:
		return fmt.Sprintf("PINPolicy(%02X)", byte(p))
	}
}

// TouchPolicy controls whether using a key requires a physical touch.
type TouchPolicy byte

const (
	TouchPolicyDefault TouchPolicy = 0x00
	TouchPolicyNever   TouchPolicy = 0x01
	TouchPolicyAlways  TouchPolicy = 0x02
	TouchPolicyCached  TouchPolicy = 0x03
)

// TouchPolicyFromValue maps a wire value back to a TouchPolicy.
func TouchPolicyFromValue(value byte) (TouchPolicy, error) {
	if value > byte(TouchPolicyCached) {
		return 0, fmt.Errorf("pivtypes: unknown touch policy value 0x%02X", value)
	}
	return TouchPolicy(value), nil
}

func (p TouchPolicy) String() string {
	switch p {
	case TouchPolicyDefault:
		return "Default"
	case TouchPolicyNever:
		return "Never"
	case TouchPolicyAlways:
		return "Always"
	case TouchPolicyCached:
		return "Cached"
	default:
		return fmt.Sprintf("TouchPolicy(%02X)", byte(p))
	}
}
