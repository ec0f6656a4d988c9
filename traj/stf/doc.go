/*
 * doc.go, part of goALTBC.
 *
 * Copyright 2021 Raul Mera <rauldotmeraatusachdotcl>
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

/*
Package stf implements the simple trajectory format, a compressed text
trajectory format that is easy to read and write from any language. Each frame
carries the lattice vectors of the simulation cell.

An STF file is compressed with z-standard (zstd). Files whose name ends in
"z" are gzip-compressed, in "r", raw deflate, and in "l", lzw.

An STF file may only contain ASCII symbols.

A STF file has a "header" starting in the first line, and ending with a line that starts with the
characters "**" followed by one or more spaces, and the number of atoms per frame.

Each line of the header must be a pair key=value. The precision (an integer greater than 0,
see below) should be included in the header, with the key "prec". If absent, it is taken to be 2.
The species of the atoms may be given with the key "symbols", as a comma-separated list, and
the periodicity of the cell with the key "pbc" and three T/F flags. For example:

	prec=3
	symbols=Ge,Te,Te
	pbc=T T T
	** 3

After the header, the file has one line per atom, per frame. Each line contains 3 integers,
the x y and z cartesian coordinates in Angstrom, multiplied by 10 to the power of (precision)
and rounded.

Each frame ends with a line starting with the character "*" (no whitespaces before), optionally
followed by one or more whitespace and 9 floating-point numbers separated by spaces. If present,
these numbers are the lattice vectors a, b and c, in Angstrom.

The "**" sequence may only be used as a header termination.
*/
package stf
