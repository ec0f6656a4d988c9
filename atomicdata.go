/*
 * atomicdata.go, part of goALTBC.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import "strings"

//A map for assigning mass to elements.
//Mostly the elements found in chalcogenides, pnictides and
//other systems where three-body correlations are of interest.
var symbolMass = map[string]float64{
	"H":  1.008,
	"Li": 6.94,
	"B":  10.81,
	"C":  12.01,
	"N":  14.01,
	"O":  16.00,
	"F":  18.998,
	"Na": 22.99,
	"Mg": 24.30,
	"Al": 26.98,
	"Si": 28.08,
	"P":  30.97,
	"S":  32.06,
	"Cl": 35.45,
	"K":  39.1,
	"Ca": 40.08,
	"Ti": 47.87,
	"Cr": 51.996,
	"Mn": 54.94,
	"Fe": 55.84,
	"Co": 58.93,
	"Ni": 58.69,
	"Cu": 63.55,
	"Zn": 65.38,
	"Ga": 69.72,
	"Ge": 72.63,
	"As": 74.92,
	"Se": 78.96,
	"Br": 79.904,
	"Ag": 107.87,
	"Cd": 112.41,
	"In": 114.82,
	"Sn": 118.71,
	"Sb": 121.76,
	"Te": 127.60,
	"I":  126.90,
	"Au": 196.97,
	"Hg": 200.59,
	"Tl": 204.38,
	"Pb": 207.2,
	"Bi": 208.98,
}

// normalizeSymbol returns the symbol with the usual capitalization ("GE" -> "Ge").
func normalizeSymbol(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Symbol2Mass returns the mass of the element with the given symbol, and
// false if the element is not known.
func Symbol2Mass(symbol string) (float64, bool) {
	m, ok := symbolMass[normalizeSymbol(symbol)]
	return m, ok
}
