package secret

// SecretStore provides a pluggable interface for sensitive values such as
// database passwords. Connections in the config only carry the key.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// Password resolves key through store. An empty key yields an empty password.
func Password(store SecretStore, key string) (string, error) {
	if key == "" || store == nil {
		return "", nil
	}
	v, err := store.Get(key)
	if err != nil {
		return "", err
	}
	return string(v), nil
}
