// Package exporter renders the loaded price dataset into downloadable
// formats. The xlsx writer builds a workbook with excelize, the CSV
// writer streams rows with a UTF-8 BOM so Excel opens them correctly.
package exporter
