package store

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome is the non-fault result of a store, load or show call
type Outcome int

const (
	Success Outcome = iota
	NameConflict
	NotFound
	Inaccessible
)

var outcomeNames = map[Outcome]string{
	Success:      "success",
	NameConflict: "name-conflict",
	NotFound:     "not-found",
	Inaccessible: "inaccessible",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Outcome) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for k, v := range outcomeNames {
		if strings.EqualFold(v, s) {
			*o = k
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", s)
}
