// Package charts builds the run figures with gonum/plot and presents them.
//
// Figures:
//   - top records by ServiciodeDeuda as a bar chart
//   - ICV box plots by Zona and by Región, clipped to a quantile range
//   - a 3-D scatter of capital, FPD rate and outstanding balance in oblique
//     projection, in full and quantile-clipped versions, both also saved as
//     PNG files in the figures directory
//
// A Presenter tries its renderers in order (interactive HTML with inline
// SVG, then static PNG), writes the first successful rendering to a temp
// file and hands it to an Opener. Chart failures are logged and never stop
// the run.
package charts
