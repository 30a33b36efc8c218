// SPDX-License-Identifier: GPL-3.0-only

package adminauth

// Binding says which property a session is good for. It is a tagged
// variant, Scoped or Global, so validation can never compare a real
// property id against an unset field. Global exists only for sessions
// issued before properties had their own secrets; do not extend it.
type Binding struct {
	propertyID uint
	scoped     bool
}

func ScopedBinding(propertyID uint) Binding {
	return Binding{propertyID: propertyID, scoped: true}
}

func GlobalBinding() Binding {
	return Binding{}
}

func bindingFor(propertyID *uint) Binding {
	if propertyID == nil {
		return GlobalBinding()
	}
	return ScopedBinding(*propertyID)
}

// Scoped returns the bound property id, or false for a global binding.
func (b Binding) Scoped() (uint, bool) {
	return b.propertyID, b.scoped
}

// Matches reports whether the binding authorizes the given property.
// Property ids are strictly positive; zero never matches, not even a
// global binding.
func (b Binding) Matches(propertyID uint) bool {
	if propertyID == 0 {
		return false
	}
	if !b.scoped {
		return true
	}
	return b.propertyID == propertyID
}
