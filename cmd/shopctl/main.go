// Package main shopctl 运维命令行：建表、审计日志清理、超级管理员初始化
package main

import "shop-admin/cmd/shopctl/commands"

func main() {
	commands.Execute()
}
