// Package checkout prices a shopping basket against a catalog of unit prices
// and promotional deals. Deals are parsed from short descriptions such as
// "3A for 130" or "2E get one B free", ranked by the saving they offer and
// applied greedily before the remaining items are charged at list price.
package checkout
