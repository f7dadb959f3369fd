package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common failure classes.
var (
	// ErrCycle is matched by every dependency-cycle error (alias,
	// import, or module) via errors.Is.
	ErrCycle = errors.New("lumos: dependency cycle")

	// ErrNotFound is matched by module- and type-lookup failures.
	ErrNotFound = errors.New("lumos: not found")
)

// DuplicateAliasError reports a second registration of an alias name.
type DuplicateAliasError struct {
	Name string
}

// Error returns the error string.
func (e *DuplicateAliasError) Error() string {
	return fmt.Sprintf("lumos: duplicate type alias %q", e.Name)
}

// AliasCycleError reports a circular type alias, with the chain in
// discovery order.
type AliasCycleError struct {
	Chain []string
}

// Error returns the error string.
func (e *AliasCycleError) Error() string {
	return fmt.Sprintf("lumos: circular type alias: %s", strings.Join(e.Chain, " -> "))
}

// Is reports whether the target error matches ErrCycle.
func (e *AliasCycleError) Is(err error) bool {
	return err == ErrCycle
}

// CircularImportError reports an import cycle, with the file chain in
// discovery order.
type CircularImportError struct {
	Chain []string
}

// Error returns the error string.
func (e *CircularImportError) Error() string {
	return fmt.Sprintf("lumos: circular import: %s", strings.Join(e.Chain, " -> "))
}

// Is reports whether the target error matches ErrCycle.
func (e *CircularImportError) Is(err error) bool {
	return err == ErrCycle
}

// CircularModuleError reports a module-dependency cycle, with the file
// chain in discovery order.
type CircularModuleError struct {
	Chain []string
}

// Error returns the error string.
func (e *CircularModuleError) Error() string {
	return fmt.Sprintf("lumos: circular module dependency: %s", strings.Join(e.Chain, " -> "))
}

// Is reports whether the target error matches ErrCycle.
func (e *CircularModuleError) Is(err error) bool {
	return err == ErrCycle
}

// IsCycle returns true if the error is any dependency-cycle error.
func IsCycle(err error) bool {
	return errors.Is(err, ErrCycle)
}

// ModuleNotFoundError reports a mod declaration whose backing file does
// not exist. Tried holds every probed location.
type ModuleNotFoundError struct {
	Name  string
	Tried []string
}

// Error returns the error string.
func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("lumos: module %q not found (tried %s)",
		e.Name, strings.Join(e.Tried, ", "))
}

// Is reports whether the target error matches ErrNotFound.
func (e *ModuleNotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// MalformedPathError reports a crate/super/self anchor appearing
// anywhere but first in a use path.
type MalformedPathError struct {
	Path    string
	Segment string
}

// Error returns the error string.
func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("lumos: malformed use path %q: %q may only appear as the first segment",
		e.Path, e.Segment)
}

// NoParentError reports a super anchor issued from the root module.
type NoParentError struct {
	Path string
}

// Error returns the error string.
func (e *NoParentError) Error() string {
	return fmt.Sprintf("lumos: use path %q: the root module has no parent", e.Path)
}

// UnresolvedPathError reports a use-path segment that names no child
// module.
type UnresolvedPathError struct {
	Path    string
	Segment string
}

// Error returns the error string.
func (e *UnresolvedPathError) Error() string {
	return fmt.Sprintf("lumos: use path %q: no module named %q", e.Path, e.Segment)
}

// Is reports whether the target error matches ErrNotFound.
func (e *UnresolvedPathError) Is(err error) bool {
	return err == ErrNotFound
}

// UnresolvedTypeError reports a use path that resolves to a module
// which does not declare the referenced type.
type UnresolvedTypeError struct {
	Name   string
	Module string
}

// Error returns the error string.
func (e *UnresolvedTypeError) Error() string {
	return fmt.Sprintf("lumos: type %q not found in module %q", e.Name, e.Module)
}

// Is reports whether the target error matches ErrNotFound.
func (e *UnresolvedTypeError) Is(err error) bool {
	return err == ErrNotFound
}

// PrivacyError reports a private type referenced across a module
// boundary. Same-module references to private types are always allowed.
type PrivacyError struct {
	Name   string
	Module string
}

// Error returns the error string.
func (e *PrivacyError) Error() string {
	return fmt.Sprintf("lumos: type %q is private to module %q", e.Name, e.Module)
}

// IsPrivacyError returns true if the error is a PrivacyError.
func IsPrivacyError(err error) bool {
	if err == nil {
		return false
	}
	var e *PrivacyError
	return errors.As(err, &e)
}

// UndefinedTypeError reports a field whose type names no definition in
// the fully merged IR set.
type UndefinedTypeError struct {
	Type  string
	Field string
	Ref   string
}

// Error returns the error string.
func (e *UndefinedTypeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("lumos: %s references undefined type %q", e.Type, e.Ref)
	}
	return fmt.Sprintf("lumos: %s.%s references undefined type %q", e.Type, e.Field, e.Ref)
}

// Is reports whether the target error matches ErrNotFound.
func (e *UndefinedTypeError) Is(err error) bool {
	return err == ErrNotFound
}

// DuplicateTypeError reports two definitions sharing one name in the
// merged IR set.
type DuplicateTypeError struct {
	Name string
}

// Error returns the error string.
func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("lumos: duplicate type definition %q", e.Name)
}

// MissingImportError reports a name listed in an import clause that is
// not defined anywhere in the loaded file set.
type MissingImportError struct {
	Name string
	File string
	From string
}

// Error returns the error string.
func (e *MissingImportError) Error() string {
	return fmt.Sprintf("lumos: %s: imported name %q is not defined in %q or any loaded file",
		e.File, e.Name, e.From)
}

// Is reports whether the target error matches ErrNotFound.
func (e *MissingImportError) Is(err error) bool {
	return err == ErrNotFound
}

// DepthError reports alias or module nesting beyond MaxDepth. The limit
// guards against pathologically deep (but acyclic) chains exhausting
// the call stack.
type DepthError struct {
	What  string
	Limit int
}

// Error returns the error string.
func (e *DepthError) Error() string {
	return fmt.Sprintf("lumos: %s nesting exceeds the maximum depth of %d", e.What, e.Limit)
}

// MetadataError reports a malformed declaration attribute, such as an
// invalid semantic version string.
type MetadataError struct {
	Type   string
	Reason string
}

// Error returns the error string.
func (e *MetadataError) Error() string {
	return fmt.Sprintf("lumos: type %q: %s", e.Type, e.Reason)
}
