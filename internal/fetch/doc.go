// Package fetch streams located artifacts to local storage and verifies
// that the stored bytes are a real document. The site silently serves login
// and error pages in place of protected files, so every download is sniffed
// and rejected unless it carries a known document signature.
package fetch
