// Package design loads page designs and string bundles from YAML.
//
// A design document lists the slots of one page; Build turns it into a
// *page.Page whose view slots are descriptors from a view.Registry. A
// bundle holds the localized strings of one locale for every page, and is
// applied with page.Loc before the page's views are built. Watcher reloads
// a bundle when its file changes.
package design
