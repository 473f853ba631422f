package secret

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/viant/afs"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"
)

// SecureInput defines parameters for securing secrets
type SecureInput struct {
	SourceURL string                 `json:"sourceURL,omitempty" description:"URL to read the secret from (if content is not provided)"`
	Content   string                 `json:"content,omitempty" description:"Raw content to encrypt (if sourceURL is not provided)"`
	Data      map[string]interface{} `json:"data,omitempty" description:"JSON data to encrypt (if sourceURL and content are not provided)"`
	DestURL   string                 `json:"destURL" required:"true" description:"Destination URL where to store the encrypted secret"`
	Target    string                 `json:"target,omitempty" description:"Target credential type ('raw', 'basic', 'key', 'generic', etc.)"`
	Key       string                 `json:"key,omitempty" description:"Encryption key, e.g., 'blowfish://default'"`
}

// SecureOutput contains results from encrypting a secret
type SecureOutput struct {
	Success bool   `json:"success" description:"Whether the operation succeeded"`
	Message string `json:"message,omitempty" description:"Optional result message"`
}

// Secure encrypts and stores a secret
func (s *Service) Secure(ctx context.Context, input *SecureInput, output *SecureOutput) error {
	var data []byte
	var err error
	switch {
	case input.Content != "":
		data = []byte(input.Content)
	case len(input.Data) > 0:
		if data, err = json.Marshal(input.Data); err != nil {
			return fmt.Errorf("failed to marshal data: %w", err)
		}
	case input.SourceURL != "":
		fs := afs.New()
		if data, err = fs.DownloadWithURL(ctx, input.SourceURL); err != nil {
			return fmt.Errorf("failed to download from %s: %w", input.SourceURL, err)
		}
	default:
		return fmt.Errorf("no content provided: specify sourceURL, content, or data")
	}

	var targetType reflect.Type
	if input.Target != "" && input.Target != "raw" {
		if targetType, err = cred.TargetType(input.Target); err != nil {
			return fmt.Errorf("invalid target type '%s': %w", input.Target, err)
		}
	}

	var aSecret *scy.Secret
	if targetType != nil {
		instance := reflect.New(targetType).Interface()
		if err := json.Unmarshal(data, instance); err != nil {
			return fmt.Errorf("failed to unmarshal data to target type %s: %w", input.Target, err)
		}
		resource := scy.NewResource(targetType, input.DestURL, input.Key)
		aSecret = scy.NewSecret(instance, resource)
	} else {
		resource := scy.NewResource(nil, input.DestURL, input.Key)
		aSecret = scy.NewSecret(string(data), resource)
	}

	if err := s.scyService.Store(ctx, aSecret); err != nil {
		return fmt.Errorf("failed to store encrypted secret: %w", err)
	}
	output.Success = true
	output.Message = fmt.Sprintf("secret encrypted and stored at %s", input.DestURL)
	return nil
}
