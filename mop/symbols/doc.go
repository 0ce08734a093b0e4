// Package symbols walks a host namespace and reports the entries of one kind.
//
// ForEach streams matching entries to a visitor that can stop the walk;
// CollectAll gathers them into a fresh map. Neither keeps the namespace or
// any entry after it returns, and neither promises an order.
package symbols
