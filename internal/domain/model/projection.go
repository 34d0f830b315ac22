package model

// Scheme names a deterministic 2D projection formula.
type Scheme string

// Supported projection schemes.
const (
	SchemePCA  Scheme = "pca"
	SchemeTSNE Scheme = "tsne"
	SchemeUMAP Scheme = "umap"
)

// Schemes lists every supported scheme in a stable order.
var Schemes = []Scheme{SchemePCA, SchemeTSNE, SchemeUMAP}

// Coordinate is a projected point and the scheme that produced it.
type Coordinate struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Scheme Scheme  `json:"scheme"`
}

// Placement is a read-only view of a student after clustering and projection.
type Placement struct {
	Student   *Student `json:"-"`
	StudentID int64    `json:"student_id"`
	ClusterID int      `json:"cluster_id"`
	X         float64  `json:"proj_x"`
	Y         float64  `json:"proj_y"`
}
