/*
	Package dvid provides types, constants and functions that have no other dependencies
	and can be used by all packages within this client.
*/
package dvid

import (
	"fmt"
)

const (
	Kilo = 1 << 10
	Mega = 1 << 20
	Giga = 1 << 30
	Tera = 1 << 40
)

// UUID is a hexadecimal string with enough characters to uniquely identify a
// version node on the remote server.  The client treats it as opaque.
type UUID string

// InstanceName is the name of a data instance (a named volume) within a
// version node.
type InstanceName string

// NilUUID is an empty UUID used to signify "no version".
const NilUUID = UUID("")

// IsValidUUID returns an error unless the string is non-empty hexadecimal.
func IsValidUUID(u UUID) error {
	if len(u) == 0 {
		return fmt.Errorf("UUID must be non-empty")
	}
	for _, r := range u {
		if !(r >= '0' && r <= '9') && !(r >= 'a' && r <= 'f') && !(r >= 'A' && r <= 'F') {
			return fmt.Errorf("UUID %q is not a hexadecimal string", u)
		}
	}
	return nil
}
