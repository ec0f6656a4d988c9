/*
 * doc.go, part of goALTBC.
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

/*Package chem is the main package of goALTBC. It provides atom, topology and
molecule structures, and readers for the structure files commonly used for
crystals and liquids, which carry the lattice vectors of the cell together with
the atomic coordinates.


	**Capabilities**


    Reads (extended) XYZ files, single- or multi-frame, with the lattice and
	periodicity given in the comment line.

    Reads VASP POSCAR/CONTCAR files. XDATCAR trajectories are read by the
	traj/vasp package, STF trajectories by traj/stf and DCD trajectories by
	traj/dcd.

    The Molecule object implements the Traj interface, so a multi-frame XYZ
	file can be analyzed exactly like a trajectory.

The three-body analysis itself is in the altbc package, built on the box
(cell geometry) and neighbor (cell-list neighbor search) packages.
*/
package chem
