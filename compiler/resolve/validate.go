package resolve

import (
	"fmt"

	"github.com/getlumos/lumos/schema/ir"
)

// ValidateDefs checks the complete, merged IR set in one pass: names
// must be unique, and every user-defined placeholder must match a
// definition somewhere in the set. It deliberately runs only after all
// files are merged so forward references across files and modules
// succeed.
func ValidateDefs(defs ir.Set) error {
	index := make(map[string]bool, len(defs))
	for _, def := range defs {
		if index[def.Name] {
			return &DuplicateTypeError{Name: def.Name}
		}
		index[def.Name] = true
	}
	for _, def := range defs {
		switch def.Kind {
		case ir.DefRecord:
			for _, f := range def.Fields {
				if err := checkRef(f.Type, index, def.Name, f.Name); err != nil {
					return err
				}
			}
		case ir.DefVariant:
			for _, v := range def.Variants {
				for _, f := range v.Fields {
					field := v.Name + "." + f.Name
					if err := checkRef(f.Type, index, def.Name, field); err != nil {
						return err
					}
				}
			}
		case ir.DefAlias:
			if err := checkRef(*def.Alias, index, def.Name, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkRef walks one canonical type, recursing through sequences and
// optionals, and verifies every defined-type reference against index.
func checkRef(t ir.Type, index map[string]bool, owner, field string) error {
	switch t.Kind {
	case ir.KindDefined:
		if !index[t.Name] {
			return &UndefinedTypeError{Type: owner, Field: field, Ref: t.Name}
		}
	case ir.KindVec, ir.KindArray, ir.KindOption:
		return checkRef(*t.Elem, index, owner, field)
	}
	return nil
}

// DeprecationNotices returns one human-readable notice per deprecated
// field occurrence. Notices are advisory only and never fail a
// resolution run.
func DeprecationNotices(defs ir.Set) []string {
	var notices []string
	note := func(owner, field, reason string) {
		msg := fmt.Sprintf("%s.%s is deprecated", owner, field)
		if reason != "" {
			msg += ": " + reason
		}
		notices = append(notices, msg)
	}
	for _, def := range defs {
		for _, f := range def.Fields {
			if f.Deprecated {
				note(def.Name, f.Name, f.DeprecatedReason)
			}
		}
		for _, v := range def.Variants {
			for _, f := range v.Fields {
				if f.Deprecated {
					note(def.Name, v.Name+"."+f.Name, f.DeprecatedReason)
				}
			}
		}
	}
	return notices
}
