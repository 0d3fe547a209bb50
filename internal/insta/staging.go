package insta

import "os"

// NewStagingDir creates a uniquely named staging directory for one post
// under root. The shortcode goes into the name so leftovers are attributable;
// MkdirTemp's random suffix avoids collisions between concurrent requests
// for the same post.
func NewStagingDir(root, prefix, shortcode string) (string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}
	return os.MkdirTemp(root, prefix+shortcode+"_")
}
