package mesh

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOBJ writes the mesh in Wavefront OBJ format, for offline inspection
// of diagnostic artifacts. Face indices are 1-based per the format.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(bw, "v %f %f %f\n", v[0], v[1], v[2]); err != nil {
			return err
		}
	}
	for _, t := range m.Triangles {
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1); err != nil {
			return err
		}
	}
	return bw.Flush()
}
