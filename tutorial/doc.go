// Package tutorial assembles the interactive Gaussian mixture tutorial from
// the numerical packages.
//
// A Config selects the theme, the panels and the slider positions. Session
// owns the interactive EM run, Comparison the K-Means versus GMM panel and
// RunWalkthrough records a full EM run for the animated walkthrough. Every
// panel is turned into chart figures that presentation adapters draw;
// BuildPage renders all configured panels at once.
package tutorial
