// Package store is the note-store engine: a flat text file where each line is
// one record,
//
//	<id>\t<status>\t<date>\t<content>\n
//
// with status one of U (undone), D (done) or P (postponed) and date in
// YYYY-MM-DD form.
//
// Reads stream the file line by line. Every mutation except Add goes through
// Rewrite, which writes a full replacement next to the store and renames it
// into place, so the store on disk is always either the old version or the
// new one. There is no locking between processes: two concurrent writers
// race and the last rename wins.
package store
