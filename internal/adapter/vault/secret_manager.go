package vault

import (
	"fmt"

	"github.com/hashicorp/vault/api"
)

// SecretManager reads deployment secrets from Vault's KV v2 engine. It is
// optional: when Vault is not configured the values from the config file
// and environment are used as-is.
type SecretManager struct {
	client *api.Client
}

func NewSecretManager(address, token string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	return &SecretManager{client: client}, nil
}

func (sm *SecretManager) GetDatabaseURL() (string, error) {
	return sm.readField("secret/data/database", "connection_string")
}

func (sm *SecretManager) GetJWTSecret() (string, error) {
	return sm.readField("secret/data/auth", "jwt_secret")
}

func (sm *SecretManager) GetSendGridAPIKey() (string, error) {
	return sm.readField("secret/data/sendgrid", "api_key")
}

func (sm *SecretManager) readField(path, field string) (string, error) {
	secret, err := sm.client.Logical().Read(path)
	if err != nil {
		return "", err
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault: no secret at %s", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("vault: unexpected secret format at %s", path)
	}
	value, ok := data[field].(string)
	if !ok {
		return "", fmt.Errorf("vault: field %s missing at %s", field, path)
	}
	return value, nil
}
