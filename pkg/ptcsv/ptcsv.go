// Copyright 2024 Francis Michael Stephens. All rights reserved.  Use of this
// source code is governed by an MIT license that can be found in the LICENSE
// file.

package ptcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// In the case that the CSV reader generates an error we generate a line
// ([]string) with two elements, the first is the errString constant and the
// second is the error itself
const errString = "error"

// A Record is one point read from a CSV file. The expected columns are
// id, name, then one column per coordinate.
type Record struct {
	LineNum int
	Id      int64
	Name    string
	Point   []float64
	// If Error is not nil, then all other fields except LineNum must be
	// zeroed
	Error error
}

// Reads every point record from r. The first line is treated as a header
// and skipped. Per line parse failures travel inside the returned records,
// only failures of the reader itself produce an error.
func ReadPoints(r io.Reader, dims int) ([]Record, error) {
	csvR := csv.NewReader(r)
	csvR.FieldsPerRecord = -1

	// Consume the first line and ignore it
	// This line contains the column names and no data
	_, err := csvR.Read()
	if err != nil {
		return nil, err
	}

	lines, err := csvR.ReadAll()
	if err != nil {
		return nil, err
	}

	records := []Record{}
	lineNum := 0
	for _, line := range lines {
		lineNum++
		records = append(records, processLine(line, lineNum, dims))
	}
	return records, nil
}

// As ReadPoints, but streaming the records through a channel so a large
// file can be indexed while it is still being read
func ReadPointsAsync(r io.Reader, dims int) (chan Record, error) {
	csvR := csv.NewReader(r)
	csvR.FieldsPerRecord = -1

	lineChan, err := readLinesAsync(csvR)
	if err != nil {
		return nil, err
	}
	return processLinesAsync(lineChan, dims), nil
}

func readLinesAsync(csvR *csv.Reader) (chan []string, error) {
	lineChan := make(chan []string, 1024)

	// Consume the first line and ignore it
	// This line contains the column names and no data
	_, err := csvR.Read()
	if err != nil {
		return nil, err
	}

	go func() {
		defer close(lineChan)
		for {
			line, err := csvR.Read()
			if err == io.EOF {
				// No more csv data
				return
			}
			if err != nil {
				lineChan <- []string{errString, err.Error()}
				continue
			}
			lineChan <- line
		}
	}()
	return lineChan, nil
}

func processLinesAsync(lineChan chan []string, dims int) chan Record {
	recordChan := make(chan Record, 1024)

	go func() {
		defer close(recordChan)

		lineNum := 0
		for line := range lineChan {
			lineNum++
			recordChan <- processLine(line, lineNum, dims)
		}
	}()

	return recordChan
}

func processLine(line []string, lineNum int, dims int) Record {
	// First case is we may be consuming an error line
	if len(line) == 2 && line[0] == errString {
		return Record{LineNum: lineNum, Error: errors.New(line[1])}
	}

	if len(line) != 2+dims {
		return Record{LineNum: lineNum, Error: fmt.Errorf("error reading line %d, %d parts expecting %d in %v", lineNum, len(line), 2+dims, line)}
	}

	id, err := strconv.ParseInt(line[0], 10, 64)
	if err != nil {
		return Record{LineNum: lineNum, Error: fmt.Errorf("error reading line %d bad id %q in %v %s", lineNum, line[0], line, err)}
	}

	point := make([]float64, dims)
	for j := range point {
		c, err := strconv.ParseFloat(line[2+j], 64)
		if err != nil {
			return Record{LineNum: lineNum, Error: fmt.Errorf("error reading line %d bad coordinate %q in %v %s", lineNum, line[2+j], line, err)}
		}
		point[j] = c
	}

	return Record{
		LineNum: lineNum,
		Id:      id,
		Name:    line[1],
		Point:   point,
	}
}
