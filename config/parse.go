package config

import "strconv"

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
func parseInt(s string) (int, error)       { return strconv.Atoi(s) }
