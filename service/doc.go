// 版权所有 2025 NpcFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 service 提供对话引擎的门面：显式构造、显式传递的服务实例，
取代历史实现中的进程级单例。

门面同一时刻拥有至多一个引擎，可通过 Reload 整体重建；四个
生命周期事件原样转发（不过滤、不缓冲、保序、同步）；start /
choose / end 纯粹委派，引擎尚未加载时返回哨兵值而非使进程失败。
门面用互斥锁串行化所有入口，因此无锁的引擎可以从任意协程安全驱动。
*/
package service
