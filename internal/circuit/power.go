package circuit

import "path"

// kicadPowerSymbols lists the global power symbol names shipped with the
// KiCad standard library. A net carrying one of these names is a supply
// or ground net unless the adapter said otherwise.
var kicadPowerSymbols = []string{
	"+10V", "+12C", "+12L", "+12LF", "+12P", "+12V", "+12VA", "+15V",
	"+1V0", "+1V1", "+1V2", "+1V35", "+1V5", "+1V8", "+24V", "+28V",
	"+2V5", "+2V8", "+3.3V", "+3.3VA", "+3.3VADC", "+3.3VDAC", "+3.3VP",
	"+36V", "+3V0", "+3V3", "+3V8", "+48V", "+4V", "+5C", "+5F", "+5P",
	"+5V", "+5VA", "+5VD", "+5VL", "+5VP", "+6V", "+7.5V", "+8V", "+9V",
	"+9VA", "+BATT", "+VDC", "+VSW", "-10V", "-12V", "-12VA", "-15V",
	"-24V", "-2V5", "-36V", "-3V3", "-48V", "-5V", "-5VA", "-6V", "-8V",
	"-9V", "-9VA", "-BATT", "-VDC", "-VSW", "AC", "Earth", "Earth_Clean",
	"Earth_Protective", "GND", "GND1", "GND2", "GND3", "GNDA", "GNDD",
	"GNDPWR", "GNDREF", "GNDS", "HT", "LINE", "NEUT", "PRI_HI", "PRI_LO",
	"PRI_MID", "PWR_FLAG", "VAA", "VAC", "VBUS", "VCC", "VCCQ", "VCOM",
	"VD", "VDC", "VDD", "VDDA", "VDDF", "Vdrive", "VEE", "VMEM", "VPP",
	"VS", "VSS", "VSSA",
}

// DefaultPowerPatterns are the glob patterns applied on top of the
// power symbol table when no patterns are configured.
var DefaultPowerPatterns = []string{"VCC*", "VDD*", "VSS*", "GND*", "+*V*", "-*V*"}

// PowerClassifier decides whether a net name denotes a power net. It is
// the naming-convention fallback used when the raw model carries no
// explicit classification.
type PowerClassifier struct {
	exact    map[string]struct{}
	patterns []string
}

// NewPowerClassifier builds a classifier from the KiCad power symbol
// table plus the given glob patterns (path.Match syntax). Nil patterns
// select DefaultPowerPatterns.
func NewPowerClassifier(patterns []string) *PowerClassifier {
	if patterns == nil {
		patterns = DefaultPowerPatterns
	}
	exact := make(map[string]struct{}, len(kicadPowerSymbols))
	for _, s := range kicadPowerSymbols {
		exact[s] = struct{}{}
	}
	return &PowerClassifier{exact: exact, patterns: patterns}
}

// IsPower reports whether name matches the power-net conventions.
func (p *PowerClassifier) IsPower(name string) bool {
	if _, ok := p.exact[name]; ok {
		return true
	}
	for _, pat := range p.patterns {
		if ok, err := path.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}
