package storage

// NativeIDField is the backend-native key used by the document-store and
// local-persisted adapters. The public contract only ever exposes IDField;
// translation happens exactly once at each adapter boundary.
const NativeIDField = "_id"

// ToNative returns a copy of rec with the public id renamed to the native
// key. Records without an id pass through unchanged.
func ToNative(rec Record) Record {
	out := Clone(rec)
	if id, ok := out[IDField]; ok {
		delete(out, IDField)
		out[NativeIDField] = id
	}
	return out
}

// FromNative returns a copy of rec with the native key renamed back to the
// public id.
func FromNative(rec Record) Record {
	out := Clone(rec)
	if id, ok := out[NativeIDField]; ok {
		delete(out, NativeIDField)
		out[IDField] = id
	}
	return out
}
