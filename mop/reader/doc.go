// Package reader manufactures simple reader accessors: callables whose whole
// behavior is "return the attribute stored under one key".
//
// Every accessor runs the same body. What differs is the prehashed key fixed
// when the accessor is installed, so installing many readers adds table
// entries but no code:
//
//	table := reader.NewTable(reader.WithInstaller(h))
//	acc, err := table.InstallSimpleReader("Class::MOP::Method::name", keys.Name)
//	v, err := acc.Call(method) // method's "name" attribute, or host.Undef
package reader
