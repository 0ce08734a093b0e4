package reader

import "github.com/on-the-ground/mopaccel/mop/keys"

// StandardReaders returns the accessors the metaobject layer expects at boot.
func StandardReaders() map[string]keys.Key {
	return map[string]keys.Key{
		"Class::MOP::Mixin::HasMethods::_method_map":      keys.Methods,
		"Class::MOP::Mixin::HasMethods::method_metaclass": keys.MethodMetaclass,
		"Class::MOP::Method::name":                        keys.Name,
		"Class::MOP::Method::package_name":                keys.PackageName,
		"Class::MOP::Method::body":                        keys.Body,
		"Class::MOP::Package::name":                       keys.Package,
	}
}
