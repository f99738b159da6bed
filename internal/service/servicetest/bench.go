// Package servicetest writes a small benchmark data tree for tests.
package servicetest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/config"
)

// Files is the tree WriteBench lays out, relative to the data root.
var Files = map[string]string{
	"spectra/protease/Trypsin_Human.mgf": "BEGIN IONS\nTITLE=t1\nPEPMASS=500.1\nCHARGE=2+\n100.0 10\n200.0 20\nEND IONS\n" +
		"BEGIN IONS\nTITLE=t2\n150.5 3\nEND IONS\n" +
		"BEGIN IONS\nTITLE=t3\nEND IONS\n",
	"spectra/protease/LysC.mzML":    "<mzML/>",
	"spectra/species/Yeast.mgf":     "BEGIN IONS\nTITLE=y1\n1 1\nEND IONS\n",
	"coverage/mAb1_Heavy.csv":       "position,1,2,3,4,5\nresidue,E,V,Q,L,V\nregion,FR1,CDR1,CDR1,FR2,CDR2\nCasanovo,10,12,n/a,8,0\n",
	"coverage/mAb1_Light.csv":       "position,1,2,3\nresidue,D,I,Q\nregion,CDR1,CDR1,FR2\nCasanovo,1,2,3\n",
	"coverage/mAb2_Heavy.csv":       "position,1,2\nresidue,A,B\nregion,FR1,CDR3\nPointNovo,4,5\n",
	"indicators/noise_peaks.csv":    "tool,noise_factor,aa_recall,peptide_recall\nCasanovo,1,87.5,50\nPointNovo,1,80,bad\n",
	"indicators/peptide_length.csv": "tool,peptide_length,aa_recall,peptide_recall\nCasanovo,8,90,75\n",
	"efficiency.csv":                "algorithm,throughput\nCasanovo,120.5\nDeepNovo,40\n",
}

// WriteBench creates Files under a fresh temp dir and returns a config
// rooted there.
func WriteBench(t testing.TB) config.Config {
	t.Helper()
	root := t.TempDir()
	for rel, body := range Files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.Default()
	cfg.DataRoot = root
	return cfg
}
