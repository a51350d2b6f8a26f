package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/munashechidyiwa/merchant-portfolios/pkg/errors"
)

func TestParseCSV(t *testing.T) {
	input := "Terminal ID, Merchant Name ,MTD Total\n" +
		"T001,OK Zimbabwe Avondale,15200.00\n" +
		" T002 , Chicken Inn Borrowdale ,8750.50\n"

	headers, rows, err := ParseCSV(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Equal(t, []string{"Terminal ID", "Merchant Name", "MTD Total"}, headers)
	assert.Len(t, rows, 2)

	assert.Equal(t, "T001", rows[0]["Terminal ID"])
	assert.Equal(t, "OK Zimbabwe Avondale", rows[0]["Merchant Name"])
	assert.Equal(t, "T002", rows[1]["Terminal ID"])
	assert.Equal(t, "Chicken Inn Borrowdale", rows[1]["Merchant Name"])
}

func TestParseCSVPadsShortRows(t *testing.T) {
	input := "Terminal ID,Merchant Name,MTD Total\n" +
		"T001,Short Row\n"

	_, rows, err := ParseCSV(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "", rows[0]["MTD Total"])
}

func TestParseCSVDropsExtraCells(t *testing.T) {
	input := "Terminal ID,Merchant Name\n" +
		"T001,Long Row,unexpected,cells\n"

	headers, rows, err := ParseCSV(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Len(t, headers, 2)
	assert.Len(t, rows, 1)
	assert.Len(t, rows[0], 2)
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, _, err := ParseCSV(strings.NewReader(""))
	assert.Equal(t, errors.ErrEmptyUpload, err)
}

func TestParseCSVHeaderOnly(t *testing.T) {
	_, _, err := ParseCSV(strings.NewReader("Terminal ID,Merchant Name\n"))
	assert.Equal(t, errors.ErrEmptyUpload, err)
}
