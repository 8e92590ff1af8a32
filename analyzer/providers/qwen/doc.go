/*
包 qwen 提供阿里云通义千问（DashScope 兼容模式）的元数据分析适配实现。

图像请求若未使用 qwen-vl 系列模型，RequestHook 会自动切换到 qwen-vl-plus。
*/
package qwen
