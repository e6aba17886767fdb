// Package media deals with the physical side of uploads: it parses mxc media
// references, locates blob files under the media store root, and probes disk
// usage of the filesystem holding them.
package media

import (
	"fmt"
	"strings"
)

// Scheme is the URI scheme of Matrix content references.
const Scheme = "mxc://"

// Ref is a parsed media reference. It identifies a blob by the homeserver
// authority that stored it and an opaque media id, independent of where the
// blob lives on disk.
type Ref struct {
	Authority string
	MediaID   string
}

// ParseRef parses an mxc://authority/media_id URI. Anything lacking the
// scheme prefix or the media id segment is rejected.
func ParseRef(uri string) (Ref, error) {
	if !strings.HasPrefix(uri, Scheme) {
		return Ref{}, fmt.Errorf("not an mxc URI: %q", uri)
	}

	rest := uri[len(Scheme):]
	authority, mediaID, found := strings.Cut(rest, "/")
	if !found || authority == "" || mediaID == "" {
		return Ref{}, fmt.Errorf("malformed mxc URI: %q", uri)
	}

	return Ref{Authority: authority, MediaID: mediaID}, nil
}

// String reassembles the mxc URI.
func (r Ref) String() string {
	return Scheme + r.Authority + "/" + r.MediaID
}
