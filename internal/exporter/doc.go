// Package exporter writes the enriched record table to an xlsx workbook.
//
// XLSXWriter streams the table into a single sheet named Sheet1:
//
//	writer := exporter.NewXLSXWriter(logger)
//	err := writer.Write(ctx, "resultadoS.xlsx", table, exporter.WriteOptions{
//	    FrontColumns: []string{"Región", "Zona", "Sucursal"},
//	    BoldHeader:   true,
//	})
//
// Float columns are written as numeric cells. Missing values become blank
// cells, so a round trip through the loader yields NaN again.
package exporter
