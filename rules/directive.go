package rules

// DefaultResourceTypes is applied when a rule does not declare its own
// resource-type set.
var DefaultResourceTypes = []string{"xmlhttprequest", "script", "sub_frame"}

// Directive is a compiled network-blocking rule in the shape consumed by
// the host's declarative request-blocking layer.
type Directive struct {
	ID        int       `json:"id"`
	Priority  int       `json:"priority"`
	Action    Action    `json:"action"`
	Condition Condition `json:"condition"`
}

// Action says what to do with a matched request. This engine only blocks.
type Action struct {
	Type string `json:"type"`
}

// Condition says when a directive applies. URLFilter and RegexFilter are
// mutually exclusive.
type Condition struct {
	URLFilter     string   `json:"urlFilter,omitempty"`
	RegexFilter   string   `json:"regexFilter,omitempty"`
	ResourceTypes []string `json:"resourceTypes,omitempty"`
}

// IDRange is the disjoint block of integer ids a rule source may assign.
// Both ends are inclusive.
type IDRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Contains reports whether id falls inside the range.
func (r IDRange) Contains(id int) bool {
	return id >= r.Start && id <= r.End
}

// Width returns the number of assignable ids.
func (r IDRange) Width() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Overlaps reports whether two ranges share any id.
func (r IDRange) Overlaps(o IDRange) bool {
	return r.Start <= o.End && o.Start <= r.End
}
