package tutorial

import (
	"fmt"
	"io"

	"github.com/YuminosukeSato/gmmtutor/pkg/errors"
	"github.com/YuminosukeSato/gmmtutor/pkg/log"
)

// Formula is a LaTeX expression shown at a named mount point of the page.
type Formula struct {
	Mount string
	Title string
	TeX   string
}

// Formulas returns the formula catalog in page order.
func Formulas() []Formula {
	return []Formula{
		{"gmm-intro-formula", "Mixture density",
			`p(\mathbf{x}) = \sum_{k=1}^{K} \pi_k \mathcal{N}(\mathbf{x}|\boldsymbol{\mu}_k, \boldsymbol{\Sigma}_k)`},
		{"gaussian-formula", "Bivariate Gaussian",
			`\mathcal{N}(\mathbf{x}|\boldsymbol{\mu}, \boldsymbol{\Sigma}) = \frac{1}{2\pi|\boldsymbol{\Sigma}|^{1/2}} \exp\left(-\frac{1}{2}(\mathbf{x}-\boldsymbol{\mu})^T\boldsymbol{\Sigma}^{-1}(\mathbf{x}-\boldsymbol{\mu})\right)`},
		{"e-step-formula", "E-step",
			`\gamma(z_{nk}) = \frac{\pi_k \mathcal{N}(\mathbf{x}_n|\boldsymbol{\mu}_k, \boldsymbol{\Sigma}_k)}{\sum_{j=1}^{K} \pi_j \mathcal{N}(\mathbf{x}_n|\boldsymbol{\mu}_j, \boldsymbol{\Sigma}_j)}`},
		{"m-step-weights-formula", "M-step: weights",
			`\pi_k^{new} = \frac{N_k}{N}, \quad N_k = \sum_{n=1}^{N} \gamma(z_{nk})`},
		{"m-step-means-formula", "M-step: means",
			`\boldsymbol{\mu}_k^{new} = \frac{1}{N_k} \sum_{n=1}^{N} \gamma(z_{nk}) \mathbf{x}_n`},
		{"m-step-covariances-formula", "M-step: covariances",
			`\boldsymbol{\Sigma}_k^{new} = \frac{1}{N_k} \sum_{n=1}^{N} \gamma(z_{nk}) (\mathbf{x}_n - \boldsymbol{\mu}_k^{new})(\mathbf{x}_n - \boldsymbol{\mu}_k^{new})^T + \epsilon \mathbf{I}`},
		{"log-likelihood-formula", "Log-likelihood",
			`\ln p(\mathbf{X}|\boldsymbol{\pi}, \boldsymbol{\mu}, \boldsymbol{\Sigma}) = \sum_{n=1}^{N} \ln \left( \sum_{k=1}^{K} \pi_k \mathcal{N}(\mathbf{x}_n|\boldsymbol{\mu}_k, \boldsymbol{\Sigma}_k) \right)`},
	}
}

// FormulaRenderer typesets a formula at a mount point.
type FormulaRenderer interface {
	Render(mount, formula string) error
}

// RenderFormulas passes every catalog entry to r. A failing formula is
// logged and skipped; the number rendered is returned.
func RenderFormulas(r FormulaRenderer, logger log.Logger) int {
	rendered := 0
	for _, f := range Formulas() {
		err := errors.SafeExecute("render formula", func() error {
			return r.Render(f.Mount, f.TeX)
		})
		if err != nil {
			logger.Error("formula rendering failed", err, "mount", f.Mount)
			continue
		}
		rendered++
	}
	return rendered
}

// MarkdownRenderer writes formulas as display-math Markdown blocks.
type MarkdownRenderer struct {
	W io.Writer
}

// Render implements FormulaRenderer.
func (m MarkdownRenderer) Render(mount, formula string) error {
	if formula == "" {
		return errors.NewValidationError("formula", "must not be empty", mount)
	}
	_, err := fmt.Fprintf(m.W, "<!-- %s -->\n$$\n%s\n$$\n\n", mount, formula)
	return errors.Wrapf(err, "write formula %s", mount)
}
