package main

import (
	"fmt"
	"path/filepath"
	"strings"

	chem "github.com/rmera/goaltbc"
	"github.com/rmera/goaltbc/box"
	"github.com/rmera/goaltbc/traj/dcd"
	"github.com/rmera/goaltbc/traj/stf"
	"github.com/rmera/goaltbc/traj/vasp"
)

// input is an opened structure or trajectory.
type input struct {
	traj   chem.Traj
	top    chem.Atomer //can be nil
	pbc    box.PBC
	frames int //0 if unknown
	close  func()
}

// guessFormat returns the format of the file name, from its name.
func guessFormat(name string) string {
	base := strings.ToLower(filepath.Base(name))
	ext := filepath.Ext(base)
	switch {
	case strings.Contains(base, "xdatcar"):
		return "xdatcar"
	case strings.Contains(base, "poscar"), strings.Contains(base, "contcar"), ext == ".vasp":
		return "poscar"
	case ext == ".dcd", strings.Contains(base, ".dcd."):
		return "dcd"
	case strings.HasPrefix(ext, ".st"):
		return "stf"
	default:
		return "xyz"
	}
}

// readStructure reads a single xyz or POSCAR file into a molecule.
func readStructure(name, format string) (*chem.Molecule, error) {
	switch format {
	case "xyz":
		return chem.XYZFileRead(name)
	case "poscar":
		return chem.POSCARFileRead(name)
	}
	return nil, fmt.Errorf("%s files can't be used as structures or topologies", format)
}

// openInput opens the file name in the given format, guessing it if empty.
// topname, if not empty, is an xyz or POSCAR file with the atoms of the system.
func openInput(name, format, topname string) (*input, error) {
	if format == "" {
		format = guessFormat(name)
	}
	in := &input{pbc: box.AllPeriodic, close: func() {}}
	switch strings.ToLower(format) {
	case "xyz", "poscar":
		mol, err := readStructure(name, strings.ToLower(format))
		if err != nil {
			return nil, err
		}
		in.traj, in.top, in.pbc, in.frames = mol, mol, mol.PBC, mol.Frames()
	case "xdatcar":
		x, err := vasp.New(name)
		if err != nil {
			return nil, err
		}
		in.traj, in.close = x, x.Close
		if top := x.Topology(); top != nil {
			in.top = top
		}
	case "dcd":
		d, err := dcd.New(name)
		if err != nil {
			return nil, err
		}
		in.traj, in.close, in.frames = d, d.Close, d.Frames()
	case "stf":
		s, _, err := stf.New(name)
		if err != nil {
			return nil, err
		}
		in.traj, in.close = s, s.Close
		top, err := s.Topology()
		if err != nil {
			s.Close()
			return nil, err
		}
		if top != nil {
			in.top = top
		}
		if in.pbc, err = s.PBC(); err != nil {
			s.Close()
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if topname != "" {
		mol, err := readStructure(topname, guessFormat(topname))
		if err != nil {
			in.close()
			return nil, err
		}
		if mol.Len() != in.traj.Len() {
			in.close()
			return nil, fmt.Errorf("topology %s has %d atoms, %s has %d", topname, mol.Len(), name, in.traj.Len())
		}
		in.top = mol.Topology
	}
	return in, nil
}
