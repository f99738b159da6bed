package spectrum

// #region spectrum
// Peak is a single (m/z, intensity) pair.
type Peak struct {
	MZ        float64 `json:"mz"`
	Intensity float64 `json:"intensity"`
}

// Spectrum is one closed BEGIN IONS / END IONS block.
// Empty metadata strings mean the key was absent.
type Spectrum struct {
	Title         string `json:"title,omitempty"`
	PrecursorMass string `json:"pepmass,omitempty"`
	Charge        string `json:"charge,omitempty"`
	Sequence      string `json:"seq,omitempty"`
	Peaks         []Peak `json:"peaks"`
}
// #endregion spectrum

// #region preview
// Preview is the first spectra of a file plus its unmodified text.
type Preview struct {
	Spectra []Spectrum `json:"spectra"`
	Raw     string     `json:"raw"`
}
// #endregion preview
