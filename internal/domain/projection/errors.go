package projection

import "errors"

// ErrUnknownScheme is returned for scheme names other than pca, tsne and umap.
var ErrUnknownScheme = errors.New("unknown projection scheme")
