package repository

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/parisxmas/OxiDB/OxiResearch/internal/db"
)

// memServer is a minimal in-memory oxidb-server: enough of the command set
// to exercise the repositories end to end over a real TCP connection.
type memServer struct {
	mu      sync.Mutex
	nextID  int
	colls   map[string][]map[string]any
	uniques map[string][]string
}

func startMemServer(t *testing.T) *db.Pool {
	t.Helper()
	srv := &memServer{colls: map[string][]map[string]any{}, uniques: map[string][]string{}}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.serve(conn)
		}
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	pool, err := db.NewPool(host, port, 2)
	if err != nil {
		ln.Close()
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
		ln.Close()
	})
	return pool
}

func (s *memServer) serve(conn net.Conn) {
	defer conn.Close()
	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			return
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf))
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}
		var req map[string]any
		json.Unmarshal(payload, &req)

		data, err := s.handle(req)
		resp := map[string]any{"ok": err == nil, "data": data}
		if err != nil {
			resp["error"] = err.Error()
		}
		out, _ := json.Marshal(resp)
		binary.LittleEndian.PutUint32(lenBuf, uint32(len(out)))
		conn.Write(append(lenBuf, out...))
	}
}

func (s *memServer) handle(req map[string]any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, _ := req["collection"].(string)
	query, _ := req["query"].(map[string]any)

	switch req["cmd"] {
	case "ping":
		return "pong", nil
	case "create_index", "create_composite_index":
		return nil, nil
	case "create_unique_index":
		s.uniques[coll] = append(s.uniques[coll], req["field"].(string))
		return nil, nil
	case "insert":
		doc := req["doc"].(map[string]any)
		for _, field := range s.uniques[coll] {
			for _, existing := range s.colls[coll] {
				if lookup(existing, field) == lookup(doc, field) {
					return nil, fmt.Errorf("unique index violation on %s", field)
				}
			}
		}
		s.nextID++
		doc["_id"] = float64(s.nextID)
		s.colls[coll] = append(s.colls[coll], doc)
		return map[string]any{"id": s.nextID}, nil
	case "find":
		docs := s.match(coll, query)
		if sortSpec, ok := req["sort"].(map[string]any); ok {
			for field, dir := range sortSpec {
				desc := dir.(float64) < 0
				sort.SliceStable(docs, func(i, j int) bool {
					a := fmt.Sprint(lookup(docs[i], field))
					b := fmt.Sprint(lookup(docs[j], field))
					if desc {
						return a > b
					}
					return a < b
				})
			}
		}
		return docs, nil
	case "find_one":
		docs := s.match(coll, query)
		if len(docs) == 0 {
			return nil, nil
		}
		return docs[0], nil
	case "count":
		return map[string]any{"count": len(s.match(coll, query))}, nil
	case "update_one":
		set, _ := req["update"].(map[string]any)["$set"].(map[string]any)
		for _, doc := range s.colls[coll] {
			if matches(doc, query) {
				for k, v := range set {
					doc[k] = v
				}
				return map[string]any{"modified": 1}, nil
			}
		}
		return map[string]any{"modified": 0}, nil
	case "delete_one":
		docs := s.colls[coll]
		for i, doc := range docs {
			if matches(doc, query) {
				s.colls[coll] = append(docs[:i], docs[i+1:]...)
				return map[string]any{"deleted": 1}, nil
			}
		}
		return map[string]any{"deleted": 0}, nil
	}
	return nil, fmt.Errorf("unsupported command %v", req["cmd"])
}

func (s *memServer) match(coll string, query map[string]any) []map[string]any {
	out := []map[string]any{}
	for _, doc := range s.colls[coll] {
		if matches(doc, query) {
			out = append(out, doc)
		}
	}
	return out
}

func matches(doc, query map[string]any) bool {
	for k, v := range query {
		if lookup(doc, k) != v {
			return false
		}
	}
	return true
}

// lookup resolves dotted paths such as "user.username".
func lookup(doc map[string]any, path string) any {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}
