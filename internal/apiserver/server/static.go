package server

import (
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// spaHandler 店面单页应用
//
// 优先级：
//  1. 静态文件匹配 → 直接提供（JS/CSS/图片等）
//  2. .html 后缀匹配 → 静态导出的页面路由（如 /products → /products.html）
//  3. 兜底 → 直接返回 index.html 内容（SPA 客户端路由接管）
//
// 注意：步骤3 不能使用 http.FileServer，因为 FileServer 对 /index.html 路径
// 会发送 301 重定向到 ./，导致非根路径产生无限重定向循环。
type spaHandler struct {
	fsys       fs.FS
	fileServer http.Handler
	indexHTML  []byte
}

// newSPAHandler 创建 SPA handler，index.html 预加载到内存
func newSPAHandler(fsys fs.FS) (*spaHandler, error) {
	indexHTML, err := fs.ReadFile(fsys, "index.html")
	if err != nil {
		return nil, fmt.Errorf("read index.html: %w", err)
	}
	return &spaHandler{
		fsys:       fsys,
		fileServer: http.FileServer(http.FS(fsys)),
		indexHTML:  indexHTML,
	}, nil
}

func (s *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cleanPath := path.Clean("/" + r.URL.Path)
	if cleanPath == "/" || cleanPath == "/index.html" {
		serveIndexHTML(w, s.indexHTML)
		return
	}
	if s.hasFile(cleanPath) {
		s.fileServer.ServeHTTP(w, r)
		return
	}
	// 仅对无扩展名的路径尝试 .html
	if !strings.Contains(path.Base(cleanPath), ".") {
		htmlPath := cleanPath + ".html"
		if s.hasFile(htmlPath) {
			serveHTMLFile(w, s.fsys, htmlPath)
			return
		}
	}
	serveIndexHTML(w, s.indexHTML)
}

// hasFile 文件存在且不是目录
func (s *spaHandler) hasFile(filePath string) bool {
	cleanPath := strings.TrimPrefix(path.Clean("/"+filePath), "/")
	if cleanPath == "" {
		return false
	}
	st, err := fs.Stat(s.fsys, cleanPath)
	return err == nil && !st.IsDir()
}

// serveIndexHTML 直接写入预加载的 index.html 内容
func serveIndexHTML(w http.ResponseWriter, content []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// serveHTMLFile 从 FS 中读取指定 HTML 文件并返回
func serveHTMLFile(w http.ResponseWriter, fsys fs.FS, filePath string) {
	f, err := fsys.Open(strings.TrimPrefix(filePath, "/"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
