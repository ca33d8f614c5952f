/*
canteen-rec 是食堂菜品推荐引擎的命令行入口。

用法：

	canteen-rec [command]

命令：

	recommend   为用户生成推荐
	scores      查看协同过滤 / 内容 / 热度分数
	favorites   用户最常点的菜
	import      从 JSON 文件导入菜品与下单日志
	reset       清空用户的下单日志
	blacklist   查看或覆盖菜品黑名单（memory / redis）

配置按 默认值 → canteen.yaml → CANTEEN_* 环境变量 逐层覆盖，例如：

	CANTEEN_STORE_DRIVER=sqlite CANTEEN_STORE_SQLITE_PATH=canteen.db canteen-rec import -f menu.json
	CANTEEN_STORE_DRIVER=sqlite CANTEEN_STORE_SQLITE_PATH=canteen.db canteen-rec recommend -u 1001 -k 8
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
