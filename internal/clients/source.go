package clients

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
)

// IsRemote reports whether source names an http(s) resource rather than a
// local file.
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func completeURL(inputURL, defaultHost string) (string, error) {
	if inputURL == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	parsedURL, err := url.Parse(inputURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.IsAbs() {
		return inputURL, nil
	}
	if defaultHost == "" {
		return "", fmt.Errorf("relative URL %q needs a base URL", inputURL)
	}
	if !strings.Contains(defaultHost, "://") {
		defaultHost = "https://" + defaultHost
	}
	defaultURL, err := url.Parse(defaultHost)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	return defaultURL.ResolveReference(parsedURL).String(), nil
}

// datasetExt picks the dataset syntax from the URL path, then the
// response content type. JSON is assumed when neither says.
func datasetExt(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		switch ext := strings.ToLower(path.Ext(u.Path)); ext {
		case ".yaml", ".yml", ".json", ".jsonc":
			return ext
		}
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if strings.Contains(mediaType, "yaml") {
		return ".yaml"
	}
	return ".json"
}
