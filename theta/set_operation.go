// Apache-2.0 licensed. See LICENSE for the full text.

package theta

// Policy defines a policy for processing matched entries
type Policy interface {
	// Apply is called when a matching entry is found
	// internalEntry: the entry already in
	// incomingEntry: the matching entry from the incoming sketch
	Apply(internalEntry *uint64, incomingEntry uint64)
}

type noopPolicy struct{}

func (*noopPolicy) Apply(internalEntry *uint64, incomingEntry uint64) {}
