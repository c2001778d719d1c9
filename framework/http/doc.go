// Package http provides request and response helpers for the inspection API.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	table, err := req.BindLoc()      // {"slot": {"attr": "text"}}
//	p.Loc(table.Payloads())
//
//	name := req.PageName()           // {page}, requires the chi router
//	slot := req.SlotName()           // {slot}
//	loaded := req.Query("loaded")    // ?loaded=true
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(200, data)              // raw JSON with status
//	res.Success(data)                // 200 {"data": ...}
//
//	res.Error(400, "bad input")      // {"message": "bad input", "code": "bad_request"}
//	res.NotFound()                   // 404 {"message": "Not found."}
//	res.Fail(err)                    // 404, 422 or 500 picked from err
package http
