// Package ciplot draws group means and their confidence intervals in the
// style of R's ggplot2, rendering through gonum.org/v1/plot.
//
//
// Data Representation: Data Frames
//
// Data is handed over as a "slice of measurements"
//      var data []Measurement
//      type Measurement struct {
//          Dose   float64
//          Supp   string
//          Length float64
//      }
// and converted with NewDataFrameFrom, or read from CSV with ReadCSV.
// Methods without arguments on the element type are available as
// computed columns:
//    func(m Measurement) LogDose() float64 { return math.Log(m.Dose) }
//
//
// Types of Data Elements
//
// Internaly all columns are []float64:
//     Float     continous data
//     Int       discrete data (integer kinds)
//     String    discrete data, stored as index into a StringPool
//
//
// Layers
//
// A plot consists of layers. Each layer maps fields to aesthetics (x, y,
// color, fill, shape, linetype, group), applies a statistical transform
// (a Stat, nil is the identity) and draws the result with a Geom. Discrete
// aesthetics besides x and y split a layer into groups.
//
//
// Means and Confidence Intervals
//
// MeanCI builds the layers for the usual summary plot:
//    p := &ciplot.Plot{
//        Data: df,
//        Aes:  ciplot.AesMapping{"x": "Dose", "y": "Length", "color": "Supp"},
//    }
//    err := p.AddMeanCI(ciplot.MeanCIOptions{
//        Geoms: []string{"ribbon", "line", "pointrange"},
//        Level: 0.9,
//    })
//    err = p.Save(12*vg.Centimeter, 8*vg.Centimeter, "dose.png")
//
// The interval itself is computed by package stat under a normal,
// lognormal or binomial assumption.
//
//
// Styles
//
// Fixed aesthetics are strings in an AesMapping: colors as "#rrggbb" or
// by name, sizes and widths in points, shapes and line types by name or
// number. A geom's own style wins over mapped aesthetics which win over
// the Theme.
package ciplot
