package material

import "math"

// Fresnel describes the dielectric interface a specular term reflects off.
// The zero value means a perfect mirror.
type Fresnel struct {
	EtaI, EtaT float64
}

// IsMirror reports whether f stands for unconditional full reflection.
func (f Fresnel) IsMirror() bool {
	return f.EtaI == 0 && f.EtaT == 0
}

// Evaluate returns the unpolarized reflectance for light arriving at cosine
// cosThetaI to the surface normal.
func (f Fresnel) Evaluate(cosThetaI float64) float64 {
	if f.IsMirror() {
		return 1
	}
	return FresnelDielectric(cosThetaI, f.EtaI, f.EtaT)
}

// FresnelDielectric computes unpolarized reflectance at a smooth boundary
// between media with indices etaI (outside) and etaT (inside).  A negative
// cosine means the ray is leaving the inside medium.
func FresnelDielectric(cosThetaI, etaI, etaT float64) float64 {
	cosThetaI = math.Max(-1, math.Min(1, cosThetaI))
	if cosThetaI <= 0 {
		etaI, etaT = etaT, etaI
		cosThetaI = math.Abs(cosThetaI)
	}

	sinThetaI := math.Sqrt(math.Max(0, 1-cosThetaI*cosThetaI))
	sinThetaT := etaI / etaT * sinThetaI
	if sinThetaT >= 1 {
		// Total internal reflection.
		return 1
	}
	cosThetaT := math.Sqrt(math.Max(0, 1-sinThetaT*sinThetaT))

	rParl := (etaT*cosThetaI - etaI*cosThetaT) / (etaT*cosThetaI + etaI*cosThetaT)
	rPerp := (etaI*cosThetaI - etaT*cosThetaT) / (etaI*cosThetaI + etaT*cosThetaT)
	return (rParl*rParl + rPerp*rPerp) / 2
}
